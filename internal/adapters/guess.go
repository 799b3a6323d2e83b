package adapters

import (
	"strings"

	"leadcapture/formbridge/internal/catalog"
)

var guessPrefixes = []string{
	"your_", "user_", "contact_", "customer_", "client_", "form_", "field_", "input_",
}

type keywordRule struct {
	target   string
	keywords []string
}

// Checked in order; the first rule with a hit wins. Keep the more specific
// targets (address_line_2, company_website) ahead of the ones whose keywords
// they contain.
var keywordRules = []keywordRule{
	{catalog.FirstName, []string{"first_name", "firstname", "given_name", "forename"}},
	{catalog.LastName, []string{"last_name", "lastname", "surname", "family_name"}},
	{catalog.Email, []string{"email", "email_address", "e_mail", "mail"}},
	{catalog.PhoneNumber, []string{"phone", "phone_number", "telephone", "tel", "mobile", "cell", "phone_no"}},
	{catalog.CompanyWebsite, []string{"company_website", "website", "homepage", "url", "web", "site"}},
	{catalog.CompanyName, []string{"company", "company_name", "organization", "organisation", "business", "business_name"}},
	{catalog.AddressLine2, []string{"address_line_2", "address2", "apartment", "suite"}},
	{catalog.AddressLine1, []string{"address", "address_line_1", "street", "street_address", "address1"}},
	{catalog.City, []string{"city", "town"}},
	{catalog.State, []string{"state", "province", "region", "county"}},
	{catalog.PostalCode, []string{"postal_code", "zip", "zip_code", "zipcode", "postcode", "postal"}},
	{catalog.Country, []string{"country"}},
	{catalog.Message, []string{"message", "comments", "comment", "enquiry", "inquiry", "question", "details", "notes", "body"}},
	{catalog.SourceName, []string{"source", "source_name", "referral", "how_did_you_hear", "hear_about"}},
}

var fullNameLiterals = map[string]bool{
	"name":      true,
	"your-name": true,
	"fullname":  true,
	"full_name": true,
}

// GuessCRMMapping suggests a catalog symbolic name for a foreign field name,
// or "" when nothing matches.
func GuessCRMMapping(name string) string {
	raw := strings.ToLower(strings.TrimSpace(name))
	if raw == "" {
		return ""
	}
	if fullNameLiterals[raw] {
		return catalog.FirstName
	}

	normalized := normalizeFieldName(raw)
	stripped := normalized
	for _, prefix := range guessPrefixes {
		if strings.HasPrefix(stripped, prefix) && len(stripped) > len(prefix) {
			stripped = strings.TrimPrefix(stripped, prefix)
			break
		}
	}

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if stripped == kw {
				return rule.target
			}
		}
	}

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(stripped, kw) {
				return rule.target
			}
			if len(stripped) >= 3 && strings.Contains(kw, stripped) {
				return rule.target
			}
		}
	}

	if fullNameLiterals[normalized] || fullNameLiterals[stripped] {
		return catalog.FirstName
	}
	if strings.Contains(stripped, "subject") {
		return catalog.Message
	}
	return ""
}

func normalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
