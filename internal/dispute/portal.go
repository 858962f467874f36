package dispute

import "fmt"

// portals maps retailers to their claim-dispute portals
var portals = map[string]string{
	"Walmart": "Walmart Retail Link",
	"Kroger":  "Kroger Vendor Central",
	"Target":  "Target Partners Online",
}

// PortalFor returns the dispute portal for a retailer, falling back to
// the retailer's generic claims department.
func PortalFor(retailer string) string {
	if portal, ok := portals[retailer]; ok {
		return portal
	}
	return fmt.Sprintf("%s Claims Dept.", retailer)
}
