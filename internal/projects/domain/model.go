package domain

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("project not found")

// Project is a portfolio entry as stored and as returned to clients.
type Project struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageSrc     string    `json:"imageSrc"`
	GithubLink   string    `json:"githubLink"`
	LiveDemoLink string    `json:"liveDemoLink"`
	TechSection  string    `json:"techSection"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewProject holds every field of a project about to be inserted.
type NewProject struct {
	Title        string
	Description  string
	ImageSrc     string
	GithubLink   string
	LiveDemoLink string
	TechSection  string
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title        *string
	Description  *string
	ImageSrc     *string
	GithubLink   *string
	LiveDemoLink *string
	TechSection  *string
}

// Columns translates the present fields to their store column names.
func (p Patch) Columns() map[string]any {
	cols := make(map[string]any, 6)
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("title", p.Title)
	set("description", p.Description)
	set("image_src", p.ImageSrc)
	set("github_link", p.GithubLink)
	set("live_demo_link", p.LiveDemoLink)
	set("tech_section", p.TechSection)
	return cols
}

func (p Patch) Empty() bool {
	return len(p.Columns()) == 0
}

// ImageUpload is an uploaded image buffered in memory.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
