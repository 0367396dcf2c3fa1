// Package github crawls files from a GitHub repository branch.
//
// The crawler resolves the branch head, fetches the full tree in one
// recursive call and streams blob contents. All API traffic goes through a
// dual-strategy rate limiter: a proactive token bucket plus reactive
// header-driven backoff.
package github
