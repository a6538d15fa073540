// Package chatlog models a chat-history export and turns each conversation's
// message graph into an ordered message list.
//
// # Export Shape
//
// The export is one JSON document. Its root is either an array of
// conversations, an object holding that array under "conversations", or a
// single conversation object:
//
//	[
//	  {
//	    "title": "Trip planning",
//	    "mapping": {
//	      "a1": {"id": "a1", "message": null, "children": ["b2"]},
//	      "b2": {"id": "b2", "parent": "a1", "message": {
//	        "author": {"role": "user"},
//	        "create_time": 1615800000.5,
//	        "content": {"parts": ["Where should we go?"]}
//	      }}
//	    }
//	  }
//	]
//
// Field access is best effort: a malformed timestamp reads as absent and a
// content part of an unrecognised shape is kept as PartUnknown and skipped
// at render time.
//
// # Ordering
//
// Linearize ignores the parent/child links and orders messages by
// create_time. Messages without a timestamp sort first; ties keep node-id
// order so output is deterministic across runs.
package chatlog
