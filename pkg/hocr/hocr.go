// Package hocr reads hOCR documents into block graphs.
//
// hOCR is the HTML-based OCR format written by Tesseract and other engines.
// Content areas, paragraphs and blocks become generic layout regions, header,
// footer and page number elements become the matching region types, floats
// and images become figures, and tables become table regions. Lines carry the
// text of their words. Bounding boxes are normalized by the page bbox.
//
// hOCR carries no table cell structure, so table regions fall back to plain
// text when linearized.
//
// Main Functions:
//
// - ParseGraph: Parse hOCR data into a block graph
// - LoadGraph: Read and parse an hOCR file
// - ParseTitle: Break an hOCR title attribute into properties
package hocr
