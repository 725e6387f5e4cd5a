// Package markdown splits vault files into frontmatter and body and loads a
// vault directory into memory for the command line tools.
package markdown
