// Package core provides the business logic for facility data export.
//
// This package holds all export logic independent of any transport layer.
// It is used by the web handlers and by tests without a database.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Field Catalog: every exportable attribute, registered at init time
//     and sealed into an immutable [Catalog].
//   - Formatter: renders raw driver values per [ValueType] (dates, yen
//     amounts, integers, enum codes, periods, sanitized text).
//   - Builder: turns a [FacilityGraph] into an ordered [ExportRow] or a
//     renderer-neutral [FacilityDocument].
//   - Service: selection validation, CSV streaming, previews, single
//     documents and favorites.
//   - BatchRunner: background PDF generation packaged as a ZIP archive.
//
// # Field Registry
//
// Fields are registered at init time using [Register]:
//
//	core.Register(
//	    core.FieldDescriptor{Key: "facility_name", Label: "施設名", Group: core.GroupFacility, Type: core.ValueText},
//	    core.FieldDescriptor{Key: "land_ownership_type", Label: "土地所有形態", Group: core.GroupLand, Type: core.ValueEnum, Attr: "ownership_type", Enum: ownershipTypes},
//	)
//
// [DefaultCatalog] seals the registry on first use. Column order of an
// export is always the caller's key order, never catalog order.
//
// # Empty Values
//
// An absent attribute on an existing entity renders as the formatter's
// EmptyValue ("—" by default). Every field of a related entity that does
// not exist renders as the builder's MissingRelationValue ("" by default).
//
// # Streaming Export
//
// CSV exports load facilities in chunks of [ServiceOptions.ChunkSize] so
// related entities are fetched once per chunk, and write rows as they are
// built. Memory use is bounded by the chunk size, not the selection size.
//
// # Batch Documents
//
// [BatchRunner.Start] returns immediately with a batch id. Facilities are
// rendered by a bounded worker pool; one facility failing is recorded and
// skipped. Progress is monotonic and may be mirrored to other instances
// through a [ProgressMirror]. Finished batches are purged by the janitor
// after the retention period.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - EXP001-EXP005: Selection errors
//   - FAV001-FAV003: Favorite errors
//   - BAT001-BAT004: Batch errors
//   - DB001-DB004: Database errors
//
// # Activity Logging
//
// Exports, downloads and favorite changes are reported to an
// [ActivityRecorder] with severity levels. Secure downloads are always
// high severity.
package core
