// ABOUTME: Version information for chime
// ABOUTME: Product identity reported to remote clients
package version

const (
	// Version is the software version
	Version = "0.3.0"
	// Product is the product name
	Product = "chime"
	// Manufacturer identifies the maker
	Manufacturer = "Sendspin"
)
