// Package handler implements the HTTP API for devicemap.
//
// Routes are mounted on a chi router by NewRouter:
//
//	GET    /api/devices                   list devices
//	POST   /api/devices                   create (JSON or multipart with device_image)
//	GET    /api/devices/{id}              get device
//	DELETE /api/devices/{id}              delete device per delete policy
//	GET    /api/devices/{id}/connections  connections touching a device
//	GET    /api/connection-types          list connection types
//	POST   /api/connection-types          create connection type
//	GET    /api/connections               list connections
//	POST   /api/connections               create connection
//	GET    /api/connections/{id}          get connection
//	GET    /api/export/{json|yaml}        inventory snapshot download
//	POST   /api/import/yaml               apply a YAML seed document
//	GET    /data                          vis-network nodes and edges
//	GET    /static/img/*                  stored device images
//	GET    /events                        server-sent change events
//	GET    /metrics                       Prometheus metrics
//	GET    /healthz                       liveness
//
// Errors are returned as {"error": ..., "code": ...} with the status
// derived from the error code: VALIDATION 400, UNAUTHORIZED 401,
// NOT_FOUND 404, CONFLICT 409, anything else 500.
package handler
