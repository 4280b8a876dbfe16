// Package qskema decodes flat multi-valued key/value parameter sets (URL
// query strings, form posts) into validated structured values guided by a
// declarative schema.
//
// It provides:
//
//   - A tagged schema model: Shape (plain object), Union (ordered candidates,
//     first match wins), OptionalOf, and per-field Scalar/Array/Optional/Default
//   - Best-effort decoding: field-level failures degrade to omission; only
//     schema-authoring defects surface as errors (CodeInvalidSchema)
//   - A stable issue model via Issues (field pointer, code, message) observable
//     through DecodeOpt.IssueSink
//   - Presence metadata (seen / was-empty / default-applied) through the
//     WithMeta API
//   - Pluggable pair sources via the QueryDriver SPI (raw query strings,
//     url.Values, explicit pairs, JSON form documents)
//
// Design policy:
//   - Keep only public APIs in the root package; put the scanner under internal/.
//   - Place the DSL under dsl/, schema import under yamlschema/, alternate
//     sources under source/, and the CLI under cmd/qskema.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := buildSchema()
//	v, err := qskema.Decode(ctx, s, qskema.Query("a=1&tags=x&tags=y"))
//	dm, err := qskema.DecodeWithMeta(ctx, s, qskema.Query(r.URL.RawQuery))
package qskema
