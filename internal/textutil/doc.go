// Package textutil provides filename sanitization helpers.
//
// CleanTitle and BoundedStem turn free-form video titles into bounded,
// filesystem-safe file stems; FileToken makes video ids safe to use as lock
// file names.
package textutil
