// Package planner derives collision-safe output paths for downloads.
package planner
