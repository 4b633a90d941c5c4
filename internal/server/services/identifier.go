package services

import (
	"regexp"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,6}$`)

// ClassifyIdentifier picks the lookup field for a login identifier. The
// value itself is used as typed: no trimming, no case folding.
func ClassifyIdentifier(login string) models.LookupField {
	if emailPattern.MatchString(login) {
		return models.FieldEmail
	}
	return models.FieldUsername
}
