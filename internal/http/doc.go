// Package http provides HTTP handlers and middleware for the resource
// planning API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","principal"} with the token also
//     surfaced via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 No Content
//     and clears the cookie.
//   - POST /credentials: administrator controlled credential registration for
//     an existing employee.
//   - GET/POST /employees, GET/PUT/DELETE /employees/{id}: employee catalog
//     endpoints exchanging the `employeeDTO` payload defined in
//     employee_handler.go.
//   - GET /employees/{id}/availability?from=&to=: the resolved per-day
//     availability timeline for one employee over an inclusive date range.
//   - GET/POST /projects, GET/PUT/DELETE /projects/{id}: project catalog
//     endpoints including per-date staffing requirements.
//   - GET/POST /entries, GET/PUT/DELETE /entries/{id}: schedule entry
//     endpoints. Write responses carry advisory conflict warnings; writes are
//     never blocked by a detected conflict.
//   - GET/POST /vacations, GET /vacations/{id}, POST
//     /vacations/{id}/{approve|reject|cancel}: vacation request workflow.
//     Approval responses include conflict warnings for commitments that fall
//     inside the approved range.
//   - GET/POST /assignments, GET/DELETE /assignments/{id}, POST
//     /assignments/{id}/end: project assignment endpoints.
//   - POST /workload/records, GET /workload/report: planned/actual hour
//     recording and aggregated utilization reporting at daily, weekly or
//     monthly granularity.
//   - GET /alerts, POST /alerts/reevaluate, POST
//     /alerts/{id}/{acknowledge|resolve}: materialized alert management.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
