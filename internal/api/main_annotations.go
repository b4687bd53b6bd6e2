// @title           bookmarks API
// @version         1.0
// @description     Store, rate and describe bookmarks. Free-text fields are sanitized on the way out.
// @BasePath        /
package api
