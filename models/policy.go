package models

import "slices"

// MaxImageBytes is the per-file ceiling applied before any upload.
const MaxImageBytes int64 = 5 * 1024 * 1024

// Policy holds the compile-time limits of a collection kind.
type Policy struct {
	MaxImages     int
	MinImages     int
	MaxImageBytes int64
	// UniqueTitle rejects a create whose title already exists in the same
	// category. Only designs enforce it.
	UniqueTitle bool
	// NewestFirst lists by creation time descending.
	NewestFirst bool
}

var policies = map[Kind]Policy{
	KindDesigns:  {MaxImages: 10, MinImages: 1, MaxImageBytes: MaxImageBytes, UniqueTitle: true},
	KindProjects: {MaxImages: 4, MinImages: 1, MaxImageBytes: MaxImageBytes},
	KindBlogs:    {MaxImages: 1, MaxImageBytes: MaxImageBytes, NewestFirst: true},
	KindAdmins:   {},
	KindPartners: {},
	KindUsers:    {},
}

func PolicyFor(k Kind) Policy {
	return policies[k]
}

var designCategories = []string{
	"Modular-Kitchen-Designs",
	"Wardrobe-Designs",
	"Bedroom-Designs",
	"Living-Room-Designs",
	"Dining-Room-Designs",
	"Home-Office-Designs",
	"Kids-Bedroom-Designs",
	"Bathroom-Designs",
	"1BHK-Designs",
	"2BHK-Designs",
	"3BHK-Designs",
}

var designTypes = []string{"Normal", "Luxury", "Ultra Premium"}

func DesignCategories() []string { return slices.Clone(designCategories) }

func DesignTypes() []string { return slices.Clone(designTypes) }

func IsDesignCategory(c string) bool { return slices.Contains(designCategories, c) }

func IsDesignType(t string) bool { return slices.Contains(designTypes, t) }
