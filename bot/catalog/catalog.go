// Package catalog holds the static course offering and the best-effort
// resolution of free-text interest into catalog entries.
package catalog

import "strings"

// FallbackInterest is recorded when no catalog entry can be recognized
// in an utterance, so a completed enquiry never carries an empty
// course list.
const FallbackInterest = "General Course Inquiry"

// Category groups the courses offered under one discipline.
type Category struct {
	Name    string
	Courses []string
}

// categories is read-only reference data; iteration order is the order
// the centre advertises and the order resolution preserves.
var categories = []Category{
	{Name: "Mechanical", Courses: []string{"AutoCAD", "CATIA", "SolidWorks", "NX CAD", "Creo", "CAM"}},
	{Name: "Civil", Courses: []string{"Revit", "BIM (Building Information Modeling)"}},
	{Name: "IT", Courses: []string{"Python", "Java", "C", "C++", "Web Design"}},
}

// Categories returns the catalog in advertised order. Callers must not
// mutate the returned slices.
func Categories() []Category {
	return categories
}

// Resolve scans an utterance for category names and course names and
// returns the matched interests in catalog order. A category match
// yields "<Category> Courses" and shadows that category's individual
// courses. When nothing is recognized the result is the single
// FallbackInterest entry.
//
// Substring matching is a deliberate best-effort classifier, not an
// exact linguistic contract.
func Resolve(utterance string) []string {
	lowered := strings.ToLower(utterance)

	var interests []string
	for _, cat := range categories {
		if strings.Contains(lowered, strings.ToLower(cat.Name)) {
			interests = append(interests, cat.Name+" Courses")
			continue
		}
		for _, course := range cat.Courses {
			if strings.Contains(lowered, matchToken(course)) {
				interests = append(interests, course)
			}
		}
	}

	if len(interests) == 0 {
		return []string{FallbackInterest}
	}
	return interests
}

// matchToken reduces a course name to the token users actually type:
// "BIM (Building Information Modeling)" should match on "bim".
func matchToken(course string) string {
	token := course
	if idx := strings.Index(token, " ("); idx > 0 {
		token = token[:idx]
	}
	return strings.ToLower(token)
}

// Listing renders the catalog text shown when the flow asks which
// courses the visitor is interested in.
func Listing() string {
	var b strings.Builder
	b.WriteString("Which courses are you interested in? We offer:\n")
	for _, cat := range categories {
		b.WriteString("\n- ")
		b.WriteString(cat.Name)
		b.WriteString(": ")
		b.WriteString(strings.Join(cat.Courses, ", "))
	}
	return b.String()
}
