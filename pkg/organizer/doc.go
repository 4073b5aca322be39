// Package organizer implements the two-stage LLM pipeline that turns a
// starred-repository set into an organization proposal.
//
// Stage one sends a digest of every starred repository and asks the model to
// propose a bounded set of categories. Stage two classifies the repositories
// against those categories in fixed-size batches, marking each one as keep
// (leave alone), assign (put on a category list), or unstar (cleanup
// candidate).
//
// Model replies are free text; the first well-formed JSON array or object
// substring is extracted and parsed. Calls are retried a fixed number of
// times on transport or parse failure, and repositories whose batch never
// yields a usable reply are reported as unresolved rather than failing the
// run.
package organizer
