// ABOUTME: Embeds the widget page into the binary using go:embed
// ABOUTME: Provides templateFS for loading the page template at startup

package webwidget

import "embed"

//go:embed templates/*.html
var templateFS embed.FS
