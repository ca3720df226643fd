// Package ui provides the Bubble Tea terminal presentation layer: load an
// image by path, trigger analysis, and read the per-person result cards.
package ui
