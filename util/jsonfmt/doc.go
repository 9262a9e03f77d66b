/*
Copyright 2015 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package jsonfmt renders JSON documents as prettified (optionally sorted or
// with single-line arrays) or uglified text.
//
// A Formatter never fails outward: text that is blank, not valid JSON or that
// cannot be rendered comes back exactly as it was passed in.
package jsonfmt // import "github.com/sthielo/jsonhelper/util/jsonfmt"
