// Package paysheet keeps an append-only table of payments as an XLSX workbook.
// The workbook is stored base64 encoded under one key of a string key-value
// store, so any store able to hold text can back a dataset.
//
// A Store reaches the host through an Environment. Interactive environments
// provide storage and, optionally, a Downloader that receives finished
// workbooks. Headless environments provide nothing, and every Store operation
// run against one quietly does nothing.
package paysheet
