// Package render turns assistant replies (markdown) into styled terminal text
// and holds the colour palettes of the chat screen.
package render

import (
	"os"

	"github.com/diogo/foldchat/internal/config"
)

// Options configures the markdown renderer
type Options struct {
	// Width is the word-wrap column
	Width int

	// Style is a glamour style name or the path to a JSON style file
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultMarkdownConfig(), 80)
}

// OptionsFromConfig builds options from the markdown section of config.json.
// GLAMOUR_STYLE overrides the configured style.
func OptionsFromConfig(md config.MarkdownConfig, width int) Options {
	opts := Options{
		Width:            width,
		Style:            md.Style,
		EnableEmoji:      md.EnableEmoji,
		PreserveNewLines: md.PreserveNewLines,
		TableWrap:        md.TableWrap,
		InlineTableLinks: md.InlineTableLinks,
	}
	if opts.Style == "" {
		opts.Style = StyleDark
	}
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}

// WithWidth returns a copy with the given wrap width
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns a copy with the given style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
