package main

// General API documentation for swaggo. Build with -tags=swagger to serve it
// under /swagger/.
//
// @title           ftserve API
// @version         1.0
// @description     HTTP API for fastText model lifecycle, inference and training.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
