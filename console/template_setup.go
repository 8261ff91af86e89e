package console

import (
	"github.com/panyam/templar"

	"github.com/panyam/sigplot/core"
)

// DefaultTemplatesDir is where the dashboard templates live relative to
// the repository root
const DefaultTemplatesDir = "console/templates"

// SetupTemplates initializes the Templar template group
func SetupTemplates(templatesDir string) (*templar.TemplateGroup, error) {
	if templatesDir == "" {
		templatesDir = DefaultTemplatesDir
	}

	group := templar.NewTemplateGroup()
	group.Loader = templar.NewFileSystemLoader(templatesDir)

	// Preload so a missing dashboard page surfaces at startup instead
	// of on the first request.  MustLoad panics, hence the recover.
	commonTemplates := []string{
		"index.html",
	}

	for _, tmpl := range commonTemplates {
		func() {
			defer func() {
				if r := recover(); r != nil {
					core.Warn("Template not found: %s", tmpl)
				}
			}()
			group.MustLoad(tmpl, "")
		}()
	}

	return group, nil
}
