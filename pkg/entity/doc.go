// Package entity defines the read-side store contracts the authentication
// core consumes, along with the sentinel errors every adapter must map its
// driver failures onto.
//
// Store adapters (memory, postgres) implement the Finder and Lister
// capabilities for concrete entity types. The core never mutates entities;
// writes are an adapter concern used for provisioning and tests only.
package entity
