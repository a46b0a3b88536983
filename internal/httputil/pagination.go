package httputil

import (
	"fmt"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"
)

// Listing windows.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Page is a window over an ordered listing.
type Page struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

// Validate checks the offset is non-negative and the limit within 1..MaxPageLimit.
func (p *Page) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Offset, validation.Min(0)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(MaxPageLimit)),
	)
}

// ParsePage reads offset and limit from the query string. Missing values
// default to offset 0 and DefaultPageLimit.
func ParsePage(c *gin.Context) (Page, error) {
	page := Page{Limit: DefaultPageLimit}
	if err := c.ShouldBindQuery(&page); err != nil {
		return Page{}, fmt.Errorf("invalid pagination parameters: %w", err)
	}
	if err := page.Validate(); err != nil {
		return Page{}, fmt.Errorf("invalid pagination parameters: %w", err)
	}
	return page, nil
}
