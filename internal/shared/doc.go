// Package shared holds code used across the pipeline's packages that belongs
// to no single layer.
//
// testutil provides log capture and raw feed fixtures for tests. It must not
// import any pipeline package so that every package can use it.
package shared
