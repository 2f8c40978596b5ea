// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

// SourcedAddress represents a source description, together with a candidate
// external IP address and the quality (lifecycle state, [Quality] type) of
// the address.
type SourcedAddress interface {
	QualifiedAddress
	Source() string          // description of the originating source
	SA() SourcedAddressValue // returns a copy
}

// QualifiedAddress gives access to qualified address information and also
// allows updating the quality information aspect of an address.
type QualifiedAddress interface {
	Addr() string                                         // returns address
	Qual() Quality                                        // returns Quality
	Err() error                                           // if Quality is Failed or Unreachable, optional additional error information.
	QA() QualifiedAddressValue                            // returns (a copy of) the qualified address information
	WithNewQuality(q Quality, err error) QualifiedAddress // returns a new and updated qualified address
}

// SourcedAddressValue implements a concrete representation of a
// [SourcedAddress].
type SourcedAddressValue struct {
	Origin                string `json:"source"` // the source description
	QualifiedAddressValue        // a single associated candidate IP network address
}

var _ SourcedAddress = (*SourcedAddressValue)(nil)

// Source returns the description of the originating source.
func (sa *SourcedAddressValue) Source() string {
	return sa.Origin
}

// SA returns (a copy of) the sourced address information.
func (sa *SourcedAddressValue) SA() SourcedAddressValue {
	return *sa
}

// WithNewQuality returns newly qualified (sourced) address information.
func (sa *SourcedAddressValue) WithNewQuality(q Quality, err error) QualifiedAddress {
	qa := sa.QA()
	qa.Quality = q
	qa.err = err
	return &SourcedAddressValue{
		Origin:                sa.Origin,
		QualifiedAddressValue: qa,
	}
}

// QualifiedAddressValue is a network address with an associated quality, such
// as pending, querying, answered, failed, et cetera.
type QualifiedAddressValue struct {
	Address string  `json:"address"` // a single network IP (v4/v6) address
	Quality Quality `json:"quality"` // lifecycle (quality) state
	err     error   // optional error details for failed or unreachable addresses
}

var _ QualifiedAddress = (*QualifiedAddressValue)(nil)

// NewQualifiedAddressValue returns a QualifiedAddressValue with the given
// address, quality, and optional error detail.
func NewQualifiedAddressValue(addr string, q Quality, err error) QualifiedAddressValue {
	return QualifiedAddressValue{
		Address: addr,
		Quality: q,
		err:     err,
	}
}

// Addr returns the address.
func (qa *QualifiedAddressValue) Addr() string { return qa.Address }

// Qual return the quality.
func (qa *QualifiedAddressValue) Qual() Quality { return qa.Quality }

// Err returns an optional error that occurred while querying a source or
// verifying an address.
func (qa *QualifiedAddressValue) Err() error { return qa.err }

// QA returns (a copy of) the qualified address information.
func (qa *QualifiedAddressValue) QA() QualifiedAddressValue {
	return *qa
}

// WithNewQuality returns newly qualified address information.
func (qa *QualifiedAddressValue) WithNewQuality(q Quality, err error) QualifiedAddress {
	return &QualifiedAddressValue{
		Address: qa.Address,
		Quality: q,
		err:     err,
	}
}
