// Package extract turns a posting page into a crawler.PostingRecord: title,
// description, location, required skills, years of experience, seniority, and
// engineering domain. Every rule table is an ordered slice so results are
// deterministic.
package extract
