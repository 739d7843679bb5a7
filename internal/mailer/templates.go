package mailer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shineum/mcp-mailer/internal/email"
	"github.com/shineum/mcp-mailer/internal/store"
)

// DefaultTemplateID is the sentinel template id that resolves to the
// current default template at send time.
const DefaultTemplateID = "default"

// TemplateUpdate carries the fields of an update-email-template call.
// Nil pointers leave the stored value untouched.
type TemplateUpdate struct {
	Name      *string
	Subject   *string
	Body      *string
	IsDefault *bool
}

// Templates returns all stored email templates.
func (s *Service) Templates() []email.Template {
	return s.store.ReadTemplates()
}

// AddTemplate stores a new template, generating its id. Demotions of other
// entries are persisted before the new default is written; templates live
// one document per entry, so this is a sequence of writes, not one.
func (s *Service) AddTemplate(t email.Template) (email.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates := s.store.ReadTemplates()

	t.ID = uuid.NewString()
	if len(templates) == 0 {
		t.IsDefault = true
	}
	if t.IsDefault {
		s.persistChanged(templates, clearOtherDefaults(templates, t.ID))
	}

	if !s.store.WriteTemplate(t) {
		return email.Template{}, ErrStoreWrite
	}
	return t, nil
}

// UpdateTemplate applies the given field updates to the template with the
// given id. Setting IsDefault true demotes every other entry, each
// persisted before the updated entry itself.
func (s *Service) UpdateTemplate(id string, upd TemplateUpdate) (email.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates := s.store.ReadTemplates()
	idx := indexByKey(templates, id)
	if idx < 0 {
		return email.Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	t := &templates[idx]
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.Subject != nil {
		t.Subject = *upd.Subject
	}
	if upd.Body != nil {
		t.Body = *upd.Body
	}
	if upd.IsDefault != nil {
		t.IsDefault = *upd.IsDefault
		if *upd.IsDefault {
			s.persistChanged(templates, clearOtherDefaults(templates, id))
		} else if promoted := electDefault(templates); promoted != "" && promoted != id {
			s.persistChanged(templates, []string{promoted})
		}
	}

	if !s.store.WriteTemplate(*t) {
		return email.Template{}, ErrStoreWrite
	}
	return *t, nil
}

// DeleteTemplate removes the template with the given id. Unlike SMTP
// configurations, deleting the last template is allowed; default
// re-election only happens when entries remain.
func (s *Service) DeleteTemplate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates := s.store.ReadTemplates()
	idx := indexByKey(templates, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	wasDefault := templates[idx].IsDefault
	if !s.store.DeleteTemplate(id) {
		return ErrStoreWrite
	}

	if wasDefault {
		templates = append(templates[:idx], templates[idx+1:]...)
		if promoted := electDefault(templates); promoted != "" {
			s.persistChanged(templates, []string{promoted})
		}
	}
	return nil
}

// DefaultTemplate resolves the default template: the flagged entry, else
// the first stored entry, else the built-in fallback.
func (s *Service) DefaultTemplate() email.Template {
	templates := s.store.ReadTemplates()
	idx := defaultIndex(templates)
	if idx < 0 {
		return store.DefaultTemplates()[0]
	}
	return templates[idx]
}

func (s *Service) templateByID(id string) (email.Template, error) {
	if id == DefaultTemplateID {
		return s.DefaultTemplate(), nil
	}
	templates := s.store.ReadTemplates()
	idx := indexByKey(templates, id)
	if idx < 0 {
		return email.Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return templates[idx], nil
}

// persistChanged writes back every template whose default flag changed.
// Write failures are logged by the store and not surfaced: the invariant
// is repaired by the next default mutation.
func (s *Service) persistChanged(templates []email.Template, ids []string) {
	for _, id := range ids {
		if idx := indexByKey(templates, id); idx >= 0 {
			s.store.WriteTemplate(templates[idx])
		}
	}
}
