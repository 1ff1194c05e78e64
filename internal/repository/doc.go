// Package repository defines the persistence interface for survey sessions.
//
// The diagram engine itself owns no storage. A session store lets the server
// save a survey configuration together with the positions the user dragged
// devices to, and reopen it later: the configuration is instantiated again
// and the saved positions are applied to devices whose IDs still exist.
//
// The sqlite subpackage implements the store on modernc.org/sqlite. Its
// schema is migrated on open and it is tested against in-memory databases.
package repository
