package validation

// MaxBodySize is the maximum accepted request body (64 KB). A registration form is a
// few hundred bytes; anything near this limit is not a registration.
const MaxBodySize = 64 * 1024
