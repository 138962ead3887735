// Package html extracts readable text from HTML.
// PlainText serves page bodies stored in the CMS; Normaliser serves
// downloaded HTML files and splits them into block elements.
package html
