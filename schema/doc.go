// Package schema provides the attribute catalog of gridstore.
//
// A Schema is an ordered list of typed attributes. Attribute ids are dense
// and equal to insertion order. The schema derives a prefix-sum offset table
// used by row-major fragments, and it is sealed as soon as the first fragment
// is created from it: sealed schemas are shared read-only and reject further
// attributes.
//
//	s, err := schema.New("users",
//	    schema.Scalar("id", schema.TypeUint64),
//	    schema.Char("name", 16),
//	    schema.Scalar("flag", schema.TypeBool),
//	)
package schema
