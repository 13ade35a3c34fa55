// Package compose reads Docker Compose files and extracts the service
// metadata shown in the README lineup.
//
// For each service it yields a name, a description and an optional URL:
//
//   - description: the homepage.description label, else the comment line
//     directly above the service declaration, else empty
//   - URL: the host of the first traefik router rule, with ${DOMAIN...}
//     replaced by a placeholder
//
// Labels may be written as a mapping or as a list of strings; LabelSet
// resolves both into one ordered form while the YAML is decoded.
// Services commented out in the raw file ("# name:") are skipped.
//
// Parse failures are never fatal: a broken file contributes no services
// and a warning is logged.
package compose
