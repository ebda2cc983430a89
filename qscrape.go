// Package qscrape scrapes question records from an authenticated,
// paginated question-bank search and exports them as tabular data.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, resty/, sqlite/).
package qscrape
