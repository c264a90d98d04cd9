// Package commands defines the snfpages CLI and wires dependencies for subcommands.
//
// Commands
//
//   - generate       Load CMS data, estimate wages and write the static site
//   - serve          Generate, then serve the site with health and metrics endpoints
//   - patch-compare  Refresh wages and contact details in the comparison tool page
//   - fetch-images   Download Street View images for every facility
//
// Configuration comes from environment variables (see internal/config); the
// persistent flags override the most common ones.
package commands
