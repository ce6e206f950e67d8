// Package yamldef is the YAML implementation of config.Loader. It reads the
// same node definitions and scenario steps as the hcl package from .yaml and
// .yml files.
//
// Socket types are written as a string ("IMAGE,MASK", "*") or a list of
// names. Structural types are HCL-only.
package yamldef
