// Package crawler implements the career-page crawl pipeline: the shared
// record and site types, the retrying fetch wrapper, pacing helpers, and the
// Controller that walks a listing, discovers postings, and assembles the
// extracted records.
package crawler
