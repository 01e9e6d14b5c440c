package registry

import (
	"fmt"
	"innbot/internal/core/domain"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func searchURL(base, identifier string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid search url: %w", err)
	}

	q := u.Query()
	q.Set("query", identifier)
	q.Set("search_inactive", "0")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func hasLandmark(doc *goquery.Document, selectors Selectors) bool {
	return doc.Find(selectors.Landmark).Length() > 0
}

// extract reads the company fields of a rendered company page. A page missing any field counts
// as not found.
func extract(doc *goquery.Document, selectors Selectors) (domain.Company, error) {
	company := domain.Company{
		ShortName: textOf(doc, selectors.ShortName),
		FullName:  textOf(doc, selectors.FullName),
		Address:   textOf(doc, selectors.Address),
	}

	if !company.Complete() {
		return domain.Company{}, fmt.Errorf("%w: incomplete company data", domain.ErrCompanyNotFound)
	}

	return company, nil
}

func textOf(doc *goquery.Document, selector string) string {
	return strings.Join(strings.Fields(doc.Find(selector).First().Text()), " ")
}
