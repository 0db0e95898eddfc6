// Package patch rewrites the three files that make a system title boot a
// chain-loaded payload:
//
//   - FST moves every node whose section has no usable hash mode onto the
//     last section with hash mode 2, in place.
//   - COS points the app descriptor at safe.rpx, resizes the code areas and
//     opens every permission mask.
//   - SystemXML moves the coldboot pointer to a title from the coldboot table.
//
// Every patcher validates its whole input before it mutates anything, so a
// rejected input is left exactly as it was given. Patching is idempotent.
package patch
