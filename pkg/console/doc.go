// Package console holds the interactive Bubble Tea views: the FIPE
// valuation lookup and the sale closing dialog.
package console
