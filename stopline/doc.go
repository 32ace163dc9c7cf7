// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package stopline defines stop-the-line policies: process-wide
// interruptions of all request traffic, typically used to refresh an
// expired access token.
//
// A stop-the-line Policy is consulted in two phases. Verify classifies
// every completed attempt cheaply and synchronously. If it returns
// StopTheLine, the request manager freezes: requests dispatched from
// then on are registered but not started. The manager then runs Action
// exactly once for the freeze episode, handing it a Doer which sends
// requests without any stop-the-line policy, so the recovery action can
// itself use the network without freezing again. When the action
// reports its Outcome, the triggering request is resolved accordingly
// and the manager unfreezes, starting every request which queued up.
//
// Refresh builds the common token-refresh policy:
//
//	store := plugin.NewTokenStore(initial)
//	policy := stopline.Refresh(func(ctx context.Context, d stopline.Doer, _ *request.Parameters, _ *request.Result, _ *request.UserInfo) error {
//		token, err := fetchToken(ctx, d)
//		if err != nil {
//			return err
//		}
//		store.Set(token)
//		return nil
//	})
package stopline
