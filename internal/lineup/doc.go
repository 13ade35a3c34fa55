// Package lineup regenerates the "Stack/Service Lineup" section of a README
// from the services found in the compose tree.
//
// The pipeline, one file per step:
//
//   - stackkey.go: derive stack keys from headings and directory names
//   - section.go: locate the section and read its "###" stack headers
//   - check.go: require the README and the disk to declare the same stacks
//   - render.go: render one paragraph of services per stack
//   - enhance.go: carry hand-added links over to the new text
//   - update.go: run the steps in order and write the README back
//
// The text steps are pure functions (string in, string out). Only
// update.go and write.go touch the filesystem, and the README is written
// only after every step has succeeded.
package lineup
