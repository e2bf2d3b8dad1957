package domain

import "time"

// Presenter is the single "about me" record of the portfolio.
type Presenter struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	ProfileURL         string    `json:"profileUrl"`
	AboutMeDescription string    `json:"aboutMeDescription"`
	ContactEmail       string    `json:"contactEmail"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// PresenterPatch carries the fields of a create or update request. Nil
// fields are left untouched.
type PresenterPatch struct {
	Name               *string
	ProfileURL         *string
	AboutMeDescription *string
	ContactEmail       *string
}

func (p PresenterPatch) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.ProfileURL != nil {
		cols["profile_url"] = *p.ProfileURL
	}
	if p.AboutMeDescription != nil {
		cols["about_me_description"] = *p.AboutMeDescription
	}
	if p.ContactEmail != nil {
		cols["contact_email"] = *p.ContactEmail
	}
	return cols
}

// Missing returns the public name of the first field required for a new
// record that p does not carry, or "" when none is missing.
func (p PresenterPatch) Missing() string {
	switch {
	case p.Name == nil || *p.Name == "":
		return "name"
	case p.ProfileURL == nil || *p.ProfileURL == "":
		return "profileUrl"
	case p.ContactEmail == nil || *p.ContactEmail == "":
		return "contactEmail"
	}
	return ""
}
