// Package baseline holds the known-good identity data the verification gate
// compares against: one Record per supported title variant and one Coldboot
// entry per title the boot pointer may be set to.
//
// Both tables are built once at startup, either from the built-in defaults
// or from a YAML file, and passed explicitly to the components that need
// them. The only mutation after construction is Registry.MarkInstalled, which
// the title locator calls once per title it finds.
package baseline
