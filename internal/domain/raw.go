package domain

// RawRecord is a document as it comes out of the store, before
// normalization. It may be any value; only documents are usable.
type RawRecord = interface{}
