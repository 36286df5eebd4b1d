// Package parser renders reply templates by substituting {{placeholder}}
// tokens with review and business details.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"review-responder-go/internal/model"
)

// Supported placeholders.
const (
	PlaceholderCustomerName = "customer_name"
	PlaceholderRating       = "rating"
	PlaceholderBusinessName = "business_name"
)

const (
	defaultCustomerName = "valued customer"
	defaultBusinessName = "our team"
)

// placeholderPattern matches "{{ name }}" with optional inner whitespace
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_]+)\s*\}\}`)

// Values are the substitutions available to a template.
type Values struct {
	CustomerName string
	Rating       int
	BusinessName string
}

// ValuesFor builds template values from a review and its owner.
func ValuesFor(review *model.Review, user *model.User) Values {
	v := Values{}
	if review != nil {
		v.CustomerName = review.CustomerName
		v.Rating = review.StarRating
	}
	if user != nil {
		v.BusinessName = user.BusinessName
	}
	return v
}

// Render replaces known placeholders in content. Unknown placeholders are
// left untouched so a typo stays visible to the author.
func Render(content string, values Values) string {
	return placeholderPattern.ReplaceAllStringFunc(content, func(token string) string {
		name := strings.ToLower(placeholderPattern.FindStringSubmatch(token)[1])
		switch name {
		case PlaceholderCustomerName:
			if name := strings.TrimSpace(values.CustomerName); name != "" {
				return name
			}
			return defaultCustomerName
		case PlaceholderRating:
			return strconv.Itoa(values.Rating)
		case PlaceholderBusinessName:
			if name := strings.TrimSpace(values.BusinessName); name != "" {
				return name
			}
			return defaultBusinessName
		default:
			logrus.Debugf("Unknown template placeholder: %s", token)
			return token
		}
	})
}

// Placeholders lists the distinct placeholder names used in content, in order
// of first appearance.
func Placeholders(content string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		name := strings.ToLower(match[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Unknown returns the placeholders in content that Render cannot fill.
func Unknown(content string) []string {
	var unknown []string
	for _, name := range Placeholders(content) {
		switch name {
		case PlaceholderCustomerName, PlaceholderRating, PlaceholderBusinessName:
		default:
			unknown = append(unknown, name)
		}
	}
	return unknown
}
