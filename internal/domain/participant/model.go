package participant

import (
	"fmt"
	"strings"
)

// Identity identifies one requested participant across history sources.
// All four fields are required: two players can share a name and tag on
// different regions or platforms.
type Identity struct {
	Name     string
	Tag      string
	Region   string
	Platform string
}

func (i Identity) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("participant name is required")
	}
	if strings.TrimSpace(i.Tag) == "" {
		return fmt.Errorf("participant tag is required")
	}
	if strings.TrimSpace(i.Region) == "" {
		return fmt.Errorf("participant region is required")
	}
	if strings.TrimSpace(i.Platform) == "" {
		return fmt.Errorf("participant platform is required")
	}

	return nil
}

// Key returns the canonical lowercase form used for map keys and
// duplicate detection.
func (i Identity) Key() string {
	return strings.ToLower(i.Name + "#" + i.Tag + "@" + i.Region + "/" + i.Platform)
}

// String returns the display form shown in API responses.
func (i Identity) String() string {
	return i.Name + "#" + i.Tag
}
