package finder

import (
	"fmt"
	"strings"

	"finderworks/x402-finder/internal/models"
)

// RenderText formats a result as the natural-language summary the original
// agents returned alongside the JSON payload.
func RenderText(result *models.FindResult) string {
	category := result.Query.Category
	location := result.Query.Location

	if len(result.Results) == 0 {
		return fmt.Sprintf("No verified %s professionals found in %s.", category, location)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d qualified %s professionals in %s:\n\n", len(result.Results), category, location)

	for i, p := range result.Results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
		fmt.Fprintf(&b, "   %.1f/5 (%d reviews)\n", p.Rating, p.ReviewCount)

		phone := p.Phone
		if phone == "" {
			phone = "N/A"
		}
		fmt.Fprintf(&b, "   Phone: %s\n", phone)

		if p.LicenseNumber != "" && p.LicenseNumber != "N/A" {
			fmt.Fprintf(&b, "   License: %s (%s)\n", p.LicenseNumber, p.LicenseStatus)
		}
		if p.QuickBooksCertified {
			b.WriteString("   QuickBooks ProAdvisor Certified\n")
		}
		if len(p.Services) > 0 {
			n := len(p.Services)
			if n > 3 {
				n = 3
			}
			fmt.Fprintf(&b, "   Services: %s\n", strings.Join(p.Services[:n], ", "))
		}
		if p.Address != "" {
			fmt.Fprintf(&b, "   Address: %s\n", p.Address)
		}

		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Data sources: %s\n", strings.Join(result.DataSources, ", "))
	if result.PaymentAmount != "" {
		fmt.Fprintf(&b, "Charged %s base units for this search\n", result.PaymentAmount)
	}

	return b.String()
}
