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

// Package jsondoc reads JSON text into an ordered value tree.
//
// Unlike unmarshalling into map[string]interface{}, object members keep the
// order (and duplicates) of the input and numbers keep their literal text, so
// that a document can be re-rendered without reshuffling or reformatting the
// user's data. Validity is strict: exactly one value, nothing but whitespace
// after it.
package jsondoc // import "github.com/sthielo/jsonhelper/util/jsondoc"
