// Package object provides the dynamic object model the future engine
// executes deferred operations against.
//
// The package plays the role a reflection facility plays in a host with
// native interception: it defines the default object operations (get, set,
// delete, has, own-keys, prototype access, extensibility, property
// definition) as an explicit Object interface, plus Callable and
// Constructor for invocation, and lifts plain Go values into that model
// with Adapt.
//
// Key design constraints:
//   - Property keys are NFC-normalized at every boundary, so two spellings
//     of the same Unicode key always hit the same slot.
//   - OwnKeys is deterministic: insertion order for Basic, sorted order for
//     adapted maps, declaration order for adapted structs.
//   - Absent values are the Undefined sentinel, never nil, so callers can
//     distinguish "property holds nil" from "no property".
package object
