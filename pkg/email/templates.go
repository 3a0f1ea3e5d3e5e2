package email

import (
	"fmt"
	"strings"
)

// CampSubmissionData is the payload for the outreach-submission alert sent
// to the clinic inbox when a new camp lead arrives.
type CampSubmissionData struct {
	Name            string
	Phone           string
	Email           string
	Institution     string
	InstitutionType string
	Comments        string
}

// BuildCampSubmissionAlert creates the alert message for a new outreach
// submission.
func BuildCampSubmissionAlert(to string, data CampSubmissionData) Message {
	subject := fmt.Sprintf("New camp submission: %s", data.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "A new outreach submission was received.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", data.Name)
	fmt.Fprintf(&b, "Phone: %s\n", data.Phone)
	if data.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", data.Email)
	}
	if data.Institution != "" {
		fmt.Fprintf(&b, "Institution: %s (%s)\n", data.Institution, data.InstitutionType)
	}
	if data.Comments != "" {
		fmt.Fprintf(&b, "\nComments:\n%s\n", data.Comments)
	}

	return Message{
		To:       []string{to},
		Subject:  subject,
		TextBody: b.String(),
	}
}
