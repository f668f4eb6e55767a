package kommo

type CreateLeadInput struct {
	Name     string
	Email    string
	Phone    string
	Company  string
	Source   string
	Platform string
	Campaign string
	Subject  string
}

// Tags derived from the lead origin; empty values are skipped.
func (in CreateLeadInput) Tags() []string {
	var tags []string
	for _, t := range []string{in.Source, in.Platform, in.Campaign} {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

type ContactResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type embeddedIDs struct {
	Embedded struct {
		Leads    []ContactResponse `json:"leads"`
		Contacts []ContactResponse `json:"contacts"`
	} `json:"_embedded"`
}
