// Package fields registers every exportable facility field with the core
// catalog. Import this package for its side effects before calling
// core.DefaultCatalog.
package fields

// Each file registers one area of the facility record from init().
