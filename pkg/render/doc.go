// Package render turns a shipping submission into the shipping-instruction
// document: an HTML page filled from an embedded html/template, and a PDF
// printed from that page.
//
// ChromeRasterizer launches a headless Chrome per document, loads the HTML
// with Page.setDocumentContent, waits for the network to go idle and prints
// an A4 page. The allocator and browser contexts are cancelled on every
// return path, which terminates the browser process.
package render
