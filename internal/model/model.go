// Package model contains the domain data holders shared by every layer.
// No persistence tags and no business logic live here.
package model
