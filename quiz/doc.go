// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package quiz runs MCQ quiz attempts: generation, answering, a single
// submission and the review of results.
package quiz
