// Package content holds the fixed catalogues shown by the app: quick
// tools, splash features, farming tips and settings groups.
package content
