package contact

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the accepted date-of-birth format.
const DateLayout = "2006-01-02"

// OrgRoleSeparator joins multiple Org or Role values in the summary.
const OrgRoleSeparator = ","

// Age returns the whole years between dob and now. The second result is
// false when dob is not a valid date.
func Age(dob string, now time.Time) (int, bool) {
	born, err := time.Parse(DateLayout, strings.TrimSpace(dob))
	if err != nil {
		return 0, false
	}

	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}

	return years, true
}

// AgeSuffix formats the age annotation appended to a date of birth, or
// returns "" if dob does not parse.
func AgeSuffix(dob string, now time.Time) string {
	age, ok := Age(dob, now)
	if !ok {
		return ""
	}
	return fmt.Sprintf(" (aged %d)", age)
}

// OrgAndRole summarises the contact's Org and Role attributes, e.g.
// " (Engineer at Acme)". It returns "" when neither is present.
func (c Contact) OrgAndRole() string {
	orgs := summaryValues(c.Get(OrgKey))
	roles := summaryValues(c.Get(RoleKey))

	switch {
	case orgs != "" && roles != "":
		return " (" + roles + " at " + orgs + ")"
	case orgs != "":
		return " (" + orgs + ")"
	case roles != "":
		return " (" + roles + ")"
	default:
		return ""
	}
}

// summaryValues dedupes values keeping first occurrences, sorts them and
// joins them with OrgRoleSeparator.
func summaryValues(values []string) string {
	seen := make(map[string]bool, len(values))
	unique := make([]string, 0, len(values))

	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}

	sort.Strings(unique)
	return strings.Join(unique, OrgRoleSeparator)
}
