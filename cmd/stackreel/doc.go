// Package main hosts the stackreel CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, builds the render
// runner and its collaborators, and prints plans, caption pages, history and
// doctor results as tables or JSON. The heavy lifting lives in internal
// packages; commands here only parse flags and format output.
package main
