// Package internal contains the implementation packages of sitepack.
//
// # Package Organization
//
//   - scanner: entry point discovery from host pages
//   - stylemod: style entries of installed packages
//   - asset: url() tokens inside stylesheets
//   - style: Sass compilation and style import resolution
//   - resolve: the ordered resolve/load hook pipeline
//   - build: esbuild orchestration, static mirroring and the dev server
//   - watcher: debounced file watching for rebuilds
//   - config, errors, logging, version: ambient support
package internal
