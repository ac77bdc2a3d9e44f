// ABOUTME: Sound request properties
// ABOUTME: Well-known keys and merging of context and request properties
package chime

// Props are string properties describing a sound
type Props map[string]string

// Well-known property keys
const (
	PropEventID         = "event.id"
	PropMediaFilename   = "media.filename"
	PropDevice          = "canberra.device"
	PropThemeName       = "canberra.xdg-theme.name"
	PropApplicationName = "application.name"
)

// Merge returns a new Props with over layered on top of p
func (p Props) Merge(over Props) Props {
	merged := make(Props, len(p)+len(over))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range over {
		merged[k] = v
	}
	return merged
}

// Get returns the value for key, or "" when unset
func (p Props) Get(key string) string {
	return p[key]
}
